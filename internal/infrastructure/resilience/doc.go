/*
Package resilience provides a circuit breaker for optional remote
collaborators.

# Overview

A remote delegate that is slow or down must not delay suggestion requests.
The breaker counts failures and, once tripped, fails calls fast until a
cooldown passes. It then lets a few trial calls through and closes again
when they succeed.

# Usage

	breaker := resilience.New("plus-address", resilience.Settings{
		HalfOpenCalls: 1,
		Cooldown:      30 * time.Second,
		Trip: func(c resilience.Counts) bool {
			return c.ConsecutiveFailures >= 3
		},
	})

	alias, err := resilience.Call(breaker, func() (string, error) {
		return client.fetch(ctx, origin)
	})

# States

	Closed --[Trip]-> Open --[Cooldown]-> Half-Open --[Trials succeed]-> Closed
	                                          |
	                                      [failure]
	                                          v
	                                        Open
*/
package resilience

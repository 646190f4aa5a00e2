/*
Package ports defines the driven ports (interfaces) of the fortune flow.

These interfaces decouple the navigation state machine from the concrete HTTP client
and storage backends, so tests can swap in fakes and deployments can pick a backend.

# Key Interfaces

  - FortuneFetcher: performs the single outbound fortune request.
  - ResultStore: persists the most recent successful result under a fixed key.
*/
package ports

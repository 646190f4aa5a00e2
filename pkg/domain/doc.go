/*
Package domain contains the value types and errors of the fortune flow.

It is kept free of I/O so that clients, stores and presentation adapters can share
it without pulling in each other's dependencies.

# Key Entities

  - FortuneRequest: the validated profile sent to the fortune API.
  - FortuneResult: the prefecture returned by the API and persisted on success.
  - NavigationState: the screen, last result and in-flight flag of one session.
  - Snapshot: the read-only copy of NavigationState handed to observers.
*/
package domain

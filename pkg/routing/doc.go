// Package routing implements model auto-routing and backend selection.
//
// The auto-router partitions the model catalog into priority tiers
// under the operator's priority mode (free, daily_drive, advanced,
// luxury), then scores models within a tier against the request's
// capability profile. Tiering sets the cost/quality strategy; scoring
// picks the fittest model inside it.
//
// The backend selector is a separate concern: given a target model, it
// orders the backends advertising that model, either round-robin with a
// per-model cursor or by fewest outstanding requests.
package routing

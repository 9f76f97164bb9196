// Package publisher coordinates one merge transaction end to end: fetch the
// page, run the merge engine over its body, save the result, and record a
// history row locally.
//
// Saves use optimistic concurrency. When the page store reports a version
// conflict the computed text is thrown away and the whole transaction reruns
// from a fresh fetch, since the merge was derived from a body that no longer
// exists. Batch publishes fan out across pages with a bounded worker group.
package publisher

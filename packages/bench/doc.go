// Package bench fires a batch of calls against one endpoint and summarizes
// latency and outcomes. Calls are paced by a token bucket and bounded by a
// concurrency limit; every settlement, rejections included, lands in a
// metrics.Latency recorder.
package bench

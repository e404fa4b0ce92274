// Package metrics provides http.Observer implementations: an in-process
// latency recorder backed by an HDR histogram and a Prometheus collector,
// plus helpers to expose the collector over HTTP or write it to a file.
package metrics

/*
Package observability provides tools for monitoring the Easel engine.

It includes an event stream for real-time monitoring: interaction hooks
publish selection, mutation, and gesture events to any number of
subscribers, feeding server-sent events and test probes.
*/
package observability

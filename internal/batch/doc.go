// Package batch runs the probe engine over a list of domains.
//
// With grouping off every domain goes into a single engine run, so all
// candidate URLs are probed at once. With grouping on each domain gets its
// own run, one after another, which keeps results of a domain together and
// bounds the number of requests in flight to four.
package batch

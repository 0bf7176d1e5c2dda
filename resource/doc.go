// Package resource bounds the work the upload path may do at once.
//
// A Controller hands out upload slots (shared by the asynchronous worker pool
// and synchronous restore passes) and throttles upload bandwidth.
// A nil *Controller is valid and imposes no limits.
package resource

// Package factory instantiates pluggable backends (stores, metrics sinks)
// from configuration. A backend is selected by a type string and receives its
// raw settings, which it decodes with Decode:
//
//	store:
//	  type: sqlite
//	  conf:
//	    path: /var/lib/shiftboard.db
package factory

// Package pending tracks in-flight requests until they settle.
//
// Every entry is settled exactly once: by a matching response, by its timeout,
// by a bulk drain when the server process stops, or by an explicit session
// close. Whichever happens first removes the entry; later attempts find
// nothing and do nothing.
package pending

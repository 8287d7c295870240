package phamt

import "fmt"

// corruption panics report a broken structural invariant reached during
// descent: a programmer error that must fail fatally rather than be
// recovered from. They are never returned as errors because a caller has
// no valid way to proceed past one; the teacher panics the same way in
// immutable_art.go/helpers.go ("panic(\"Unknown node type\")") when it
// reaches a node kind its switch does not expect.
func corruptf(format string, args ...any) {
	panic(fmt.Sprintf("phamt: corrupt trie: "+format, args...))
}

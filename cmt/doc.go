package cmt

/*

Package cmt implements a concurrent merkle tree: a fixed capacity binary
merkle tree that tolerates mutations whose proofs were computed against a
root which is no longer current.

In a plain merkle tree only the first of several competing writers can
succeed. Each successful mutation changes the root, so every other writer
is left holding a proof for a tree state that no longer exists and must
fetch a fresh proof before retrying. When proofs are produced by an
off-tree mirror and submitted through a pipeline with real latency, that
round trip is the bottleneck.

The concurrent tree removes the round trip by remembering its own recent
history. Every successful mutation records a ChangeLog: the resulting
root, the full path from the written leaf to that root, and the index of
the leaf. The records live in a fixed capacity ring buffer. When a caller
submits a proof computed against an older root, the tree locates the
change log entry that produced that root and replays every entry recorded
since, 'fast-forwarding' the proof:

  - if a replayed change wrote the same leaf index the caller is talking
    about, the caller's view of the leaf is stale. For updates this is a
    conflict; for fill-or-append it is the signal to fall back to a plain
    append.
  - otherwise the change can only have perturbed the caller's proof at one
    level: the level at which the binary representations of the two leaf
    indices first diverge. Exactly that sibling entry is patched from the
    recorded path.

After at most one entry per intervening mutation the proof is valid
against the current root and the operation can be verified and applied as
if the caller had held a fresh proof all along. The ring buffer bounds the
tolerated staleness: once more than MaxBufferSize mutations have occurred
since a proof was computed, its root has aged out and the operation fails
with ErrRootNotFound.

The other key structure is the rightmost proof: the tree's own proof to
the most recently appended leaf, maintained incrementally on every
mutation. Because a complete binary tree only ever grows at the right
edge, the path for the next appended leaf is derivable from the rightmost
proof plus the canonical hashes of all-empty subtrees. Append therefore
needs no caller supplied proof at all.

There is no locking anywhere in the package and the tree is not safe for
concurrent use by multiple goroutines. 'Concurrent' refers to logically
concurrent writers whose operations are executed serially by a host that
already guarantees exclusive access, as a ledger runtime does for account
state. Every operation is a bounded synchronous computation: O(depth) per
change log entry replayed, with at most MaxBufferSize entries replayed.

All mutating operations are atomic. Verification, including
fast-forwarding, completes before any counter, change log or proof state
is touched, so a failed operation leaves the tree exactly as it found it.

Interior nodes are keccak-256 hashes of their two children. Leaves are
opaque 32 byte values chosen by the caller; the reserved all-zero value
Empty means 'no leaf written here yet'.

*/

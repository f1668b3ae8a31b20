// Package sumstring is the guest-side entry point for the sum_as_string
// binding.
//
// Built with GOOS=wasip1, SumAsString calls the host function imported from
// the "sumstring" host module. On other platforms it computes the sum
// in-process with the default overflow policy, so the same code can be unit
// tested natively.
//
// Host-side registration lives in the host package.
package sumstring

// Package mirror wires the source lister, the repository filters and the Gogs
// registrar into the mirror and list commands.
//
// A run lists every repository visible to the source account, keeps the ones
// owned by that account (dropping forks unless requested), resolves the Gogs
// owner once and submits one migration request per remaining repository in
// source order. Every outcome is printed as a status line; only setup failures
// such as listing or owner lookup errors abort the run.
package mirror

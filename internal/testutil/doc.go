// Package testutil provides deterministic helpers for tests: sequential
// run ids, fresh asset scenes and small cook-result builders.
package testutil

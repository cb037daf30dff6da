//go:build debugchecks
// +build debugchecks

package integrator

import (
	"fmt"

	"github.com/df07/go-path-integrator/pkg/core"
)

// checkThroughput panics on a negative or non-finite path weight
func checkThroughput(beta core.Vec3, where string) core.Vec3 {
	if beta.HasNegative() || !beta.IsFinite() {
		panic(fmt.Sprintf("invalid throughput %v after %s", beta, where))
	}
	return beta
}

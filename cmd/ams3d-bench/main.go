// Command ams3d-bench generates a synthetic single-tree point cloud,
// runs mode location over it, and prints convergence statistics. It is
// a demonstration binary, not a production ingestion tool: real point
// clouds come from LAS/LAZ files, which are outside this module's
// scope.
package main

import (
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/canopyscan/ams3d/pkg/ams3d"
)

func main() {
	pts := syntheticTower(50, 50, 12, 18, 5000, 42)
	fmt.Printf("Points: %d\n", len(pts))

	p := ams3d.DefaultParams()
	p.MinPointHeightAboveGround = 2
	p.CrownDiameterToTreeHeight = 0.6
	p.CrownHeightToTreeHeight = 0.6
	p.Parallel = true
	p.ShowProgress = true
	p.Progress = func(done, total int) bool {
		fmt.Printf("  progress: %d/%d\n", done, total)
		return false
	}

	start := time.Now()
	result := ams3d.LocateModesNormalized(pts, p)
	elapsed := time.Since(start)

	var converged, rejected int
	var sumX, sumY, sumZ float64
	for i, mode := range result.Modes {
		if mode.IsNaN() {
			rejected++
			continue
		}
		converged++
		sumX += mode.X
		sumY += mode.Y
		sumZ += mode.Z
		_ = pts[i]
	}

	fmt.Printf("Converged: %d\n", converged)
	fmt.Printf("Rejected (below height floor or degenerate): %d\n", rejected)
	if converged > 0 {
		fmt.Printf("Mean mode: (%.3f, %.3f, %.3f)\n",
			sumX/float64(converged), sumY/float64(converged), sumZ/float64(converged))
	}
	fmt.Printf("Elapsed: %s\n", elapsed)
}

// syntheticTower scatters n points within a cone-shaped crown centered
// at (centerX, centerY), with heights uniform in [0, maxHeight] and
// horizontal spread narrowing from baseRadius at the ground to near
// zero at the apex, loosely approximating a single conifer canopy.
func syntheticTower(centerX, centerY, baseRadius, maxHeight float64, n int, seed int64) []ams3d.Point {
	rng := rand.New(rand.NewSource(seed))
	pts := make([]ams3d.Point, 0, n)
	for i := 0; i < n; i++ {
		z := rng.Float64() * maxHeight
		radiusAtZ := baseRadius * (1 - z/maxHeight)
		angle := rng.Float64() * 2 * math.Pi
		r := rng.Float64() * radiusAtZ
		pts = append(pts, ams3d.Point{
			X: centerX + r*math.Cos(angle),
			Y: centerY + r*math.Sin(angle),
			Z: z,
		})
	}
	return pts
}

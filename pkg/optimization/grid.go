package optimization

import (
	"fmt"

	"github.com/khanhng/martingale-bot/internal/strategy"
)

// GenerateSchedules builds a candidate grid of layer schedules: for each
// depth, one schedule per leverage step, with leverage growing
// geometrically from 1 and the position split equally across layers.
// The stock two-layer [1,2] / [0.5,0.5] schedule is the depth-2,
// step-2.0 point of this grid.
func GenerateSchedules(depths []int, leverageSteps []float64) []Candidate {
	var candidates []Candidate
	for _, depth := range depths {
		if depth < 1 {
			continue
		}
		for _, step := range leverageSteps {
			if step <= 0 {
				continue
			}

			leverage := make([]float64, depth)
			size := make([]float64, depth)
			mult := 1.0
			for i := 0; i < depth; i++ {
				leverage[i] = mult
				size[i] = 1.0 / float64(depth)
				mult *= step
			}

			candidates = append(candidates, Candidate{
				Name: fmt.Sprintf("d%d_x%.1f", depth, step),
				Layers: strategy.LayerSchedule{
					Leverage: leverage,
					Size:     size,
				},
			})
		}
	}
	return candidates
}

// DefaultGrid is the stock sweep: depths 2 to 4, leverage steps 1.5,
// 2.0 and 3.0.
func DefaultGrid() []Candidate {
	return GenerateSchedules([]int{2, 3, 4}, []float64{1.5, 2.0, 3.0})
}

package planner

import "github.com/mobilerobotics/gptraj/factor"

// InitTrajectory builds the straight-line initial guess between two
// configurations: poses evenly spaced along the chart segment from start to
// end, and every velocity set to the constant average velocity. It is the
// usual starting point for BatchTrajOptimize.
func InitTrajectory(startConf, endConf factor.Variable, setting *TrajOptimizerSetting) *factor.Values {
	diff := startConf.Local(endConf)
	avgVel := make([]float64, len(diff))
	for i, d := range diff {
		avgVel[i] = d / setting.TotalTime
	}

	values := factor.NewValues()
	step := make([]float64, len(diff))
	for i := 0; i <= setting.TotalStep; i++ {
		frac := float64(i) / float64(setting.TotalStep)
		for j, d := range diff {
			step[j] = d * frac
		}
		values.Insert(factor.PoseKey(i), startConf.Retract(step))
		values.Insert(factor.VelocityKey(i), factor.NewVector(avgVel))
	}
	return values
}

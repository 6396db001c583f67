// Package simulation runs the discrete-time cleaning loop: a grid seeded with
// dirt, a set of agents starting at the origin, and a tick budget.
//
// Each tick first checks whether the grid is fully clean. If it is not, every
// agent cleans its cell and then moves, in creation order, and the tick
// counter advances. The loop stops on a clean grid or when the tick budget is
// spent; a timeout is a normal outcome with partial cleaning, not an error.
//
// Randomness comes only from the *rand.Rand handed to NewRunner, so a fixed
// seed reproduces a run exactly.
//
// Usage:
//
//	r := simulation.NewRunner(rand.New(rand.NewPCG(1, 2)))
//	out, err := r.Run(simulation.Scenario{
//	    Rows: 5, Cols: 5, DirtyFraction: 0.2, Agents: 3, MaxTicks: 100,
//	})
package simulation

// Package ai picks moves for the tile merge game.
//
// An Evaluator scores a grid as a weighted sum of heuristics (empty cells,
// smoothness, monotonicity, max tile, corner and edge placement, merge
// potential). A Searcher runs expectimax over simulated copies of a game:
// player nodes take the best direction, chance nodes average over a sample
// of spawn cells weighted by the spawn distribution. A Policy decides per
// position whether a one-ply greedy choice is enough or a deeper search is
// needed.
package ai

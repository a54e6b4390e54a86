// Package overlap renders the conflict graph of a timeline.
//
// Each interval becomes a node and each pair of overlapping intervals an
// edge. Lane assignment is an interval graph coloring, so the graph is a
// quick way to check a layout by eye: [ToDOT] can group nodes into one
// cluster per lane, and no edge should ever stay inside a cluster.
//
// Layout is done by Graphviz through the go-graphviz WebAssembly build, so
// no system Graphviz install is needed:
//
//	dot := overlap.ToDOT(l, overlap.Options{ClusterLanes: true})
//	svg, err := overlap.RenderSVG(ctx, dot)
package overlap

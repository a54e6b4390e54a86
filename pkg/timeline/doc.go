// Package timeline defines the file formats of stacklane.
//
// A [Document] is what users write: a titled list of intervals measured in
// units (months by default) from an epoch date. Documents are read from
// JSON, YAML or TOML; [ReadFile] picks the decoder from the extension.
//
// A [Layout] is what stacklane produces: every interval with its lane,
// compaction flag and pixel rectangle, plus the axis ticks. Layouts are
// always JSON so they can be cached, served over HTTP and re-rendered
// without recomputing.
package timeline

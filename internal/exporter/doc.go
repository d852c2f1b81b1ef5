// Package exporter converts finished tables and chart series into
// downloadable byte payloads: UTF-8 CSV, Excel workbooks, PDF table grids
// and PNG/TIFF chart rasters.
//
// Format availability is probed once at startup; a format whose renderer
// fails the probe is reported as unavailable through the capabilities
// endpoint instead of erroring deep inside a download request. Exports never
// persist anything server-side.
package exporter

// Package display presents rendered grids.
//
// Text surfaces draw into a terminal: terminal uses true-color half blocks, two pixels
// per cell, and braille plots a lightness threshold at eight dots per cell. File
// surfaces write png, gif or svg. Windowed output lives in package gui because it
// needs cgo.
package display

// Package viz renders the galaxy in the terminal.
//
// Stars are plotted on a braille [Canvas], two by four dots per character
// cell, each cell coloured with the mean colour of the stars in it. A
// [Frame] projects star positions through a [View] centred on the mass
// center of the live stars; zoom is the number of dots one area length
// spans.
//
// [Model] is the bubbletea program behind `galaxysim live`.
//
// # Key Bindings
//
//	Space     - Pause/Resume simulation
//	V         - Cycle view (default, xy, xz, yz)
//	+ / -     - Zoom in / out
//	B         - Toggle the simulated volume outline
//	?         - Show help overlay
//	Q / Esc   - Quit
package viz

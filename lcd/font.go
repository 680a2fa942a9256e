package lcd

// builtinFont is a self-generated stand-in for the HD44780's built-in
// character generator ROM (LCDROM.h in the original implementation was
// not available to retrieve, see SPEC_FULL.md §12). It covers the
// printable ASCII subset a board firmware actually writes: space,
// digits, and uppercase letters, as 5x8 dot patterns; lowercase folds
// to its uppercase glyph rather than rendering blank. Everything else
// renders as a blank cell, same as an unprogrammed ROM slot would.
var builtinFont = buildFont()

func buildFont() map[byte][8]byte {
	f := map[byte][8]byte{
		' ': rowsFromArt(
			"     ", "     ", "     ", "     ",
			"     ", "     ", "     ", "     ",
		),
		'0': rowsFromArt(
			" ### ", "#   #", "#  ##", "# # #",
			"##  #", "#   #", " ### ", "     ",
		),
		'1': rowsFromArt(
			"  #  ", " ##  ", "  #  ", "  #  ",
			"  #  ", "  #  ", " ### ", "     ",
		),
		'2': rowsFromArt(
			" ### ", "#   #", "    #", "   # ",
			"  #  ", " #   ", "#####", "     ",
		),
		'3': rowsFromArt(
			" ### ", "#   #", "    #", "  ## ",
			"    #", "#   #", " ### ", "     ",
		),
		'4': rowsFromArt(
			"   # ", "  ## ", " # # ", "#  # ",
			"#####", "   # ", "   # ", "     ",
		),
		'5': rowsFromArt(
			"#####", "#    ", "#### ", "    #",
			"    #", "#   #", " ### ", "     ",
		),
		'6': rowsFromArt(
			" ### ", "#    ", "#### ", "#   #",
			"#   #", "#   #", " ### ", "     ",
		),
		'7': rowsFromArt(
			"#####", "    #", "   # ", "  #  ",
			" #   ", " #   ", " #   ", "     ",
		),
		'8': rowsFromArt(
			" ### ", "#   #", "#   #", " ### ",
			"#   #", "#   #", " ### ", "     ",
		),
		'9': rowsFromArt(
			" ### ", "#   #", "#   #", " ####",
			"    #", "#   #", " ### ", "     ",
		),
		'A': rowsFromArt(
			"  #  ", " # # ", "#   #", "#   #",
			"#####", "#   #", "#   #", "     ",
		),
		'B': rowsFromArt(
			"#### ", "#   #", "#   #", "#### ",
			"#   #", "#   #", "#### ", "     ",
		),
		'C': rowsFromArt(
			" ### ", "#   #", "#    ", "#    ",
			"#    ", "#   #", " ### ", "     ",
		),
		'D': rowsFromArt(
			"#### ", "#   #", "#   #", "#   #",
			"#   #", "#   #", "#### ", "     ",
		),
		'E': rowsFromArt(
			"#####", "#    ", "#    ", "#### ",
			"#    ", "#    ", "#####", "     ",
		),
		'F': rowsFromArt(
			"#####", "#    ", "#    ", "#### ",
			"#    ", "#    ", "#    ", "     ",
		),
		'G': rowsFromArt(
			" ### ", "#   #", "#    ", "#  ##",
			"#   #", "#   #", " ### ", "     ",
		),
		'H': rowsFromArt(
			"#   #", "#   #", "#   #", "#####",
			"#   #", "#   #", "#   #", "     ",
		),
		'I': rowsFromArt(
			" ### ", "  #  ", "  #  ", "  #  ",
			"  #  ", "  #  ", " ### ", "     ",
		),
		'J': rowsFromArt(
			"    #", "    #", "    #", "    #",
			"#   #", "#   #", " ### ", "     ",
		),
		'K': rowsFromArt(
			"#   #", "#  # ", "# #  ", "##   ",
			"# #  ", "#  # ", "#   #", "     ",
		),
		'L': rowsFromArt(
			"#    ", "#    ", "#    ", "#    ",
			"#    ", "#    ", "#####", "     ",
		),
		'M': rowsFromArt(
			"#   #", "## ##", "# # #", "#   #",
			"#   #", "#   #", "#   #", "     ",
		),
		'N': rowsFromArt(
			"#   #", "##  #", "# # #", "#  ##",
			"#   #", "#   #", "#   #", "     ",
		),
		'O': rowsFromArt(
			" ### ", "#   #", "#   #", "#   #",
			"#   #", "#   #", " ### ", "     ",
		),
		'P': rowsFromArt(
			"#### ", "#   #", "#   #", "#### ",
			"#    ", "#    ", "#    ", "     ",
		),
		'Q': rowsFromArt(
			" ### ", "#   #", "#   #", "#   #",
			"# # #", "#  # ", " ## #", "     ",
		),
		'R': rowsFromArt(
			"#### ", "#   #", "#   #", "#### ",
			"# #  ", "#  # ", "#   #", "     ",
		),
		'S': rowsFromArt(
			" ### ", "#   #", "#    ", " ### ",
			"    #", "#   #", " ### ", "     ",
		),
		'T': rowsFromArt(
			"#####", "  #  ", "  #  ", "  #  ",
			"  #  ", "  #  ", "  #  ", "     ",
		),
		'U': rowsFromArt(
			"#   #", "#   #", "#   #", "#   #",
			"#   #", "#   #", " ### ", "     ",
		),
		'V': rowsFromArt(
			"#   #", "#   #", "#   #", "#   #",
			"#   #", " # # ", "  #  ", "     ",
		),
		'W': rowsFromArt(
			"#   #", "#   #", "#   #", "# # #",
			"# # #", "## ##", "#   #", "     ",
		),
		'X': rowsFromArt(
			"#   #", "#   #", " # # ", "  #  ",
			" # # ", "#   #", "#   #", "     ",
		),
		'Y': rowsFromArt(
			"#   #", "#   #", " # # ", "  #  ",
			"  #  ", "  #  ", "  #  ", "     ",
		),
		'Z': rowsFromArt(
			"#####", "    #", "   # ", "  #  ",
			" #   ", "#    ", "#####", "     ",
		),
	}
	for c := byte('a'); c <= 'z'; c++ {
		f[c] = f[c-'a'+'A']
	}
	return f
}

// rowsFromArt packs 8 rows of 5-wide ASCII art (space = off, anything
// else = on) into the HD44780's row-byte format: bit 4 is the leftmost
// column, bit 0 the rightmost.
func rowsFromArt(rows ...string) [8]byte {
	var out [8]byte
	for i, row := range rows {
		if i >= 8 {
			break
		}
		var b byte
		for col := 0; col < 5 && col < len(row); col++ {
			if row[col] != ' ' {
				b |= 1 << uint(4-col)
			}
		}
		out[i] = b
	}
	return out
}

// glyphRows returns the 8-row 5-wide bitmap for a CGROM code point,
// blank for anything not in builtinFont.
func glyphRows(code byte) [8]byte {
	return builtinFont[code]
}

/*
Package provider discovers the files a run works on.

	            +-------------+
	            |  Provider   |
	            | (discovery) |
	            +------+------+
	                   |
	            +------+------+
	            |    Local    |
	            |   folder    |
	            +-------------+

🎯 Purpose:
- Lists the immediate entries of the input folder (no recursion)
- Keeps regular files whose suffix or name matches a mask
- Snapshots name, path, size and suffix at the moment of listing

🔍 Mask rules:
- masks are case-sensitive
- "*.txt", ".txt" and "txt" all match files whose last suffix is "txt"
- a mask equal to a file name matches that file
- other wildcards are not expanded: "*" or "?.png" match nothing
- a mask written "glob:<pattern>" ("glob:log-??.bin") is matched with doublestar

Listing order is whatever the directory yields. It is not sorted and callers
must not depend on it.

Temp files written while replacing a file in place (see TempPattern) are
never listed, so a timer run does not pick up its own half-written output.
*/
package provider

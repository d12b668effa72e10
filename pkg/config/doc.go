/*
Package config holds the parameters of a run and the files they are loaded from.

	            +----------------+
	            | RunParameters  |
	            |  (validated)   |
	            +-------+--------+
	                    |
	      +-------------+-------------+
	      |             |             |
	+-----+----+  +-----+----+  +-----+----+
	|   JSON   |  |   YAML   |  |   HCL    |
	|  Parser  |  |  Parser  |  |  Parser  |
	+----------+  +----------+  +----------+

🎯 Purpose:
- Describes one run: key, masks, folders, conflict mode, treatment mode
- Validates a run before any work starts
- Loads run files so a batch can be repeated without retyping flags

🔄 Flow:
1. The CLI loads a File (optional) and overlays flags
2. File.Parameters converts names into typed modes and splits the mask
3. RunParameters.Validate reports every rejected field at once

⚡ Validation rules:
- output and input folders must be non-empty paths to existing directories
- the key must be exactly 18 characters
- the mask must yield at least one token after splitting on ',', ';' or whitespace

Only the first eight bytes of the key feed the transform (see package xorblock).
The remaining characters are checked for length and otherwise unused.

🤝 Interfaces:
- Parser: format-specific run file parsing, registered by extension
*/
package config

/*
Package transform runs the per-file XOR transform.

	+---------+     +---------+     +---------+
	|  input  | --> | xorblock| --> | output  |
	|  file   |     | (block) |     |  file   |
	+---------+     +---------+     +---------+

🎯 Purpose:
- Streams one file through the 8-byte periodic XOR, block by block
- Places the result according to the conflict mode
- Reports throttled progress and exactly one WorkerFinished event

📍 Output placement:
- AddCounter: the output folder receives name, or name_1, name_2... before
  the extension. Names are claimed with an exclusive create.
- Overwrite: a hidden temp sibling of the source is written and renamed over
  the source on success. The output folder is not used.

⏸️ Signals:
Stop and pause are checked before every block. A stop leaves the output
partial: the AddCounter file is truncated at a block boundary and an
Overwrite temp file stays under its temp name with the source untouched.
Partial output is never cleaned up.
*/
package transform

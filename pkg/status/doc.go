/*
Package status tracks the analysis state of every file in a session.

	            +-------------+
	            |   Tracker   |
	            | (per path)  |
	            +------+------+
	                   |
	      +-----------+-----------+
	      |           |           |
	+-----+----+ +----+-----+ +---+----+
	| Analyzing| | Analyzed | | Failed |
	+----------+ +----------+ +--------+

🎯 Purpose:
- Tells "never attempted" apart from "attempted and failed"
- Gives the renderer a label and colour per file row

🔄 Flow:
1. A click marks the path Analyzing
2. The analysis cache marks it Analyzed or Failed
3. A new search resets the tracker

The tracker holds no analysis text, only the tag. The text lives in the
analysis cache so a failed path never carries placeholder content.
*/
package status

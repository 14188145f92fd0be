/*
Package config loads repolens settings.

	            +-------------+
	            |   Config    |
	            | (Settings)  |
	            +------+------+
	                   |
	      +-----------+-----------+
	      |           |           |
	+-----+----+ +----+----+ +----+----+
	|   YAML   | |   HCL   | |  JSON   |
	|  Parser  | |  Parser | |  Parser |
	+----------+ +---------+ +---------+

🎯 Purpose:
- Picks a parser by file extension from the registry
- Overrides credentials from GITHUB_TOKEN, OPENAI_API_KEY and OPENAI_BASE_URL
- Fills defaults and rejects negative limits

🔄 Flow:
1. Reads the file, or starts empty when there is none
2. Parses format-specific syntax
3. Applies environment overrides
4. Validates and fills defaults

HCL files may call env("NAME") to read a variable at load time.
*/
package config

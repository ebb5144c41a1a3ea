package scaffold

// Template is a named slash-command definition materialized into the
// assistant's commands directory.
type Template struct {
	// Name becomes the file name (<name>.md) and the slash-command name.
	Name string

	// Description is rendered into the front-matter header.
	Description string

	// Body is the command prompt itself.
	Body string
}

// BuiltinTemplates returns the slash commands shipped with memdock,
// in materialization order. The rendered files are fully regenerable:
// re-running setup overwrites them without backups.
func BuiltinTemplates() []Template {
	return []Template{
		{
			Name:        "memory-save",
			Description: "Store a note in the memory service with optional tags",
			Body: `Store the following information in the memory service.

Use the memory MCP server's store operation. If the user supplied tags
(comma-separated after the content), attach them to the stored memory.
Confirm what was stored and echo the assigned tags.

$ARGUMENTS
`,
		},
		{
			Name:        "memory-recall",
			Description: "Search stored memories by natural-language query",
			Body: `Search the memory service for entries relevant to the query below.

Use the memory MCP server's retrieve operation with semantic search.
Present the results as a short list: content summary, tags, and stored
date. Say so plainly if nothing relevant is found.

$ARGUMENTS
`,
		},
		{
			Name:        "memory-status",
			Description: "Report memory service health and database statistics",
			Body: `Check the memory service status.

Query the memory MCP server's health and statistics operations. Report
whether the service is healthy, the storage backend in use, and the
number of stored memories. Mention the service endpoint URL.
`,
		},
	}
}

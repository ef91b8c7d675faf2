package mcp

import (
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
)

// Tool name templates. "{m}" is replaced by the served module name.
const (
	summaryToolTemplate         = "get_{m}_summary"
	searchDocstringToolTemplate = "search_{m}_docstring"
	sourceCodeToolTemplate      = "get_{m}_source_code"
	docstringToolTemplate       = "get_{m}_docstring"
	searchDocsToolTemplate      = "search_{m}_docs"
	liveDocstringToolTemplate   = "inspect_{m}_docstring"
	functionsToolTemplate       = "get_{m}_functions"
)

const summaryDescription = `Get a high level summary of the {m} module.`

const searchDocstringDescription = `Retrieves relevant docstrings from {m} module functions or classes based on a search query.

This tool performs a semantic search against indexed {m} documentation to find
the most relevant function or class docstrings that match the provided query.

Args:
    query (str): A search query describing the {m} functionality you're looking for.
        Examples: "How to use basic functions", "Core classes", "Data processing"
    limit (int, optional): Maximum number of relevant docstrings to return. Defaults to 3.

Returns:
    List[str]: A list of formatted docstrings, each containing the result rank,
    the name and type of the object and its docstring.`

const sourceCodeDescription = `Retrieves the source code for a specific function or class from the {m} module.

This tool searches for the exact function or class name and returns its source code.

Args:
    name (str): The exact name of the function or class you want to retrieve source code for.
        Examples: "MyClass", "my_function", "process_data"

Returns:
    str: The source code of the specified function or class, or an error message if not found.`

const docstringDescription = `Retrieves the docstring for a specific function or class from the {m} module.

This tool searches for the exact function or class name and returns its docstring.

Args:
    name (str): The exact name of the function or class you want to retrieve the docstring for.
        Examples: "MyClass", "my_function", "process_data"

Returns:
    str: The docstring of the specified function or class, or an error message if not found.`

const searchDocsDescription = `Given a topic or query, searches documentation of {m} for relevant information like example and usage.

Args:
    topic (str): Description of the task or topic you want to learn more about with {m}.
        Examples: "Common use cases", "Working with main features", "Typical workflows"

Returns:
    Dict[str, Any]: A dictionary containing:
        - 'name': The name of the doc file or example
        - 'type': The record type
        - 'result': The complete doc related to the search query`

const liveDocstringDescription = `Returns the docstring of a given function or class, read from the installed {m} module at call time.

Args:
    obj_name (str): The name of the function or class within the module.
    module_name (str, optional): The module to load. Defaults to {m}.

Returns:
    str: The docstring of the object, or None if no docstring is present.`

const functionsDescription = `Returns a list of all function names in the {m} module.

Returns:
    list: A list of function names in the module, or an error message if the module cannot be imported.`

func render(template, module string) string {
	return strings.ReplaceAll(template, "{m}", module)
}

func summaryTool(m string) mcp.Tool {
	return mcp.NewTool(render(summaryToolTemplate, m),
		mcp.WithDescription(render(summaryDescription, m)),
	)
}

func searchDocstringTool(m string) mcp.Tool {
	return mcp.NewTool(render(searchDocstringToolTemplate, m),
		mcp.WithDescription(render(searchDocstringDescription, m)),
		mcp.WithString("query",
			mcp.Required(),
			mcp.Description("Search query describing the functionality you're looking for"),
		),
		mcp.WithNumber("limit",
			mcp.DefaultNumber(3),
			mcp.Description("Maximum number of docstrings to return"),
		),
	)
}

func sourceCodeTool(m string) mcp.Tool {
	return mcp.NewTool(render(sourceCodeToolTemplate, m),
		mcp.WithDescription(render(sourceCodeDescription, m)),
		mcp.WithString("name",
			mcp.Required(),
			mcp.Description("Exact name of the function or class"),
		),
	)
}

func docstringTool(m string) mcp.Tool {
	return mcp.NewTool(render(docstringToolTemplate, m),
		mcp.WithDescription(render(docstringDescription, m)),
		mcp.WithString("name",
			mcp.Required(),
			mcp.Description("Exact name of the function or class"),
		),
	)
}

func searchDocsTool(m string) mcp.Tool {
	return mcp.NewTool(render(searchDocsToolTemplate, m),
		mcp.WithDescription(render(searchDocsDescription, m)),
		mcp.WithString("topic",
			mcp.Required(),
			mcp.Description("Task or topic to find usage documentation for"),
		),
	)
}

func liveDocstringTool(m string) mcp.Tool {
	return mcp.NewTool(render(liveDocstringToolTemplate, m),
		mcp.WithDescription(render(liveDocstringDescription, m)),
		mcp.WithString("obj_name",
			mcp.Required(),
			mcp.Description("Name of the function or class within the module"),
		),
		mcp.WithString("module_name",
			mcp.Description("Module to load, defaults to "+m),
		),
	)
}

func functionsTool(m string) mcp.Tool {
	return mcp.NewTool(render(functionsToolTemplate, m),
		mcp.WithDescription(render(functionsDescription, m)),
	)
}

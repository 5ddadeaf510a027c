/*
clarity is a tool to inspect and edit resources on a Clarity LIMS
server.

Usage:

	clarity [-config file] [-v] command [flags] kind id

The kind is the name of a resource collection, such as sample,
artifact or container, and id is either a LIMS id or a full resource
URI. The commands are:

	show     print the resource document
	udf      list the user-defined fields of the resource
	set-udf  change user-defined fields and save the resource

The udf command prints one field per line as name, type and value
separated by tabs, sorted by name. The -only flag restricts the
listing to the named fields, and may be used more than once.

The set-udf command takes one or more -udf flags of the form

	name=value

The value is converted to the type the field already has, so
"-udf Volume=12.5" writes a Numeric field and "-udf Passed=true" a
Boolean one. Fields that do not exist yet are created as String
fields. Once every assignment has been applied the resource is PUT
back to the server.

Connection settings are read from the file given with -config, or
from the first of ~/.clarity.yaml, ./.clarity.yaml and
/etc/clarity.yaml, and can be overridden by the CLARITY_BASEURI,
CLARITY_USERNAME, CLARITY_PASSWORD and CLARITY_VERSION environment
variables. When the file sets main_log, the log is appended to that
file instead of standard error. The -v flag enables debug logging of
every request.
*/
package main

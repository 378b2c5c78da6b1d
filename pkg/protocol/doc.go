/*
Package protocol defines the JSON command envelope spoken by the cado
transports.

A message is a JSON object whose "type" field selects the command:

	{"type": "update-cell-code", "cell_id": "…", "code": "a = 4 + 5"}
	{"type": "run-cell", "cell_id": "…"}

Every notebook command is answered with a get-notebook-response carrying the
notebook after the command, or an error-response carrying a message, a
machine-readable kind and, when available, the notebook as the failed command
left it.
*/
package protocol

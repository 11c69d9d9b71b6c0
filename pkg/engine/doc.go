/*
Package engine implements the transactional edit engine: it records every
intercepted property write and collection mutation as a reversible
Variation, groups variations into named Commands, and replays them backward
(undo) or forward (redo).

# Recording

Entities call RecordAssignment or RecordMutation on their bound engine
before a change takes effect. The engine stores the inverse of the change in
the innermost command being declared. Outside a declared command nothing is
recorded, which is how construction and bulk loading stay out of history.

# Commands

	cmd := eng.StartCommand("Rename")
	_ = nameField.Set(doc, "X")
	_ = nameField.Set(doc, "Y")
	filed, err := eng.CompleteCommand(false)

Completed commands are filed on the undo stack with their children in
last-edit-first order, and any redo history is dropped. Commands completed
while another command is open fold into it.

# Replay

Undo and Redo share one code path: executing a variation records its own
inverse into a capture command, which is then pushed onto the opposite
stack.

An Engine is not safe for concurrent use. Only the engine currently active
in its Registry may record variations.
*/
package engine

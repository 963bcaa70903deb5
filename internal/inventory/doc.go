// Package inventory builds the extension listing shown by ext:list.
//
// A listing combines two sources: the remote catalog advertised by the
// extension feed and the extensions present in the local site. Each source is
// reached through the Source interface so that the builder never touches the
// host runtime directly. Rows from both locations are filtered by an optional
// delimited regular expression, sorted by location (remote first), name, and
// key, and finally projected onto the columns a caller asks for.
package inventory

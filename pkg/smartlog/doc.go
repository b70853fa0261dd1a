// Package smartlog ties together the connection-string parser, protocol
// state machines, session manager, and metrics collector into the single
// facade an application constructs once and logs through.
//
// A typical program builds a Facade, configures its connections, adds a
// named session, and logs through that session:
//
//	f := smartlog.New()
//	if err := f.SetConnections(`file(filename="app.log", rotate="daily")`); err != nil {
//		log.Fatal(err)
//	}
//	sess := f.Sessions.Add("main")
//	sess.Message("started")
package smartlog

// Package stores holds observable UI state for the terminal client.
//
// A Store keeps one snapshot of its state plus a Loading flag and the last
// error message. Actions run through Run, which takes a generation ticket
// per action key: when the same action is started again before the first
// call returns, only the latest completion is written. A call whose context
// was cancelled never writes its result or error.
//
//	dreams := stores.NewDreamStore(manager, logger)
//	ch, cancel := dreams.Subscribe()
//	defer cancel()
//	_ = dreams.Load(ctx)
//	snap := <-ch
package stores

// Package history records every cluster.conf version installed on this node.
//
// Each successful load appends one Entry. The history is node-local and is
// used to answer "what was running when" after the fact; it plays no part in
// deciding which document is current.
//
// Usage:
//
//	repo := history.NewSQLiteRepository(db.DB)
//	entry := &history.Entry{NodeName: "node-a", ClusterName: "alpha", ConfigVersion: 7, ...}
//	if err := repo.Record(ctx, entry); err != nil {
//	    return err
//	}
package history

/*
Package storagemodels defines the key layout and backend options shared by
every HashStore implementation.

Namespace:
All keys live under a namespace prefix (default "mediacrush"):

	ns := storagemodels.Namespace("mediacrush")
	ns.RecordKey("file", "1a2b3c4d5e6f") // mediacrush.file.1a2b3c4d5e6f
	ns.MembershipKey("file")             // mediacrush.file
	ns.ReportsKey()                      // mediacrush.reports-triggered
	ns.IndexKey()                        // mediacrush.type-index

ScanOptions:
Backends accept functional options for enumeration and retries:

	opts := []ScanOption{
	    WithPageSize(250),
	    WithMaxRetries(5),
	}
*/
package storagemodels

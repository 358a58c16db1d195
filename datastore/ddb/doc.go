/*
Package ddb provides a DynamoDB implementation of the HashStore interface.

Layout:
Every backend key is one item in a table with a single string partition key
(default attribute "pk"). Hash fields are top-level string attributes carrying
a prefix (default "f_") so they cannot collide with the key attribute. Sets
are one string-set attribute (default "members").

	client, err := ddb.NewDynamoDBClient(ctx, accessKey, secretKey, "us-east-1", "")
	store, err := ddb.New(client, ddb.DefaultTableConfig("mediacrush"))

Counters:
HIncrBy is an optimistic read-modify-write. The UpdateItem carries a
condition on the value that was read; a ConditionalCheckFailedException is
retried with exponential backoff (storagemodels.WithMaxRetries,
storagemodels.WithRetryBackoff), so concurrent increments are not lost. A
caller that loses MaxRetries races in a row gets a ConditionFailedError and
its increment is not applied.

Keys:
Key enumeration is a filtered Scan and therefore proportional to table size.
*/
package ddb

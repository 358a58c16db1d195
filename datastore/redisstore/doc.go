/*
Package redisstore provides a Redis implementation of the HashStore interface.

Every HashStore operation maps onto one Redis command (HSET, HGETALL, HINCRBY,
SADD, ...). Key enumeration uses SCAN with a MATCH prefix pattern; the page
size comes from storagemodels.WithPageSize.

	client, err := redisstore.NewRedisClient(ctx, "localhost:6379", "", 0)
	if err != nil {
	    return err
	}
	backend := redisstore.New(client)
*/
package redisstore

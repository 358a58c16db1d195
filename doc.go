/*
Package mediacrush is the storage core of MediaCrush: an object store that maps
typed entities onto a hash-per-record key/value backend and resolves the
concrete type of a bare identifier.

Records live at "<namespace>.<tag>.<id>" and every identifier is a member of
exactly one type set "<namespace>.<tag>". Values are stored as text; booleans
and null use the reserved strings "True", "False" and "None". That encoding is
lossy: a text field holding one of those strings loads back as a bool or nil.

Basic Usage:

	reg := registry.New(redisstore.New(client), "mediacrush")
	objects.Register(reg, cfg.Processors)
	store := mediacrush.NewStore(reg)

	f := objects.NewFile(cfg.Processors)
	f.Original = &path
	err := store.Save(ctx, f)

	loaded, err := mediacrush.Load[*objects.File](ctx, store, f.Identifier())
	any, err := store.Load(ctx, f.Identifier(), registry.AnyType)

The process supervisor used to run media tools lives in package invocation.
*/
package mediacrush

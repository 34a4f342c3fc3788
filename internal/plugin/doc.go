// Package plugin runs Lua selection scripts against a document.
//
// A Host owns one sandboxed Lua state with the ms API modules injected:
//
//	host, err := plugin.NewHost(&api.Context{
//	    Selection: doc,
//	    Compile:   compile,
//	    Logger:    logger,
//	}, plugin.WithExecutionTimeout(cfg.Script.Timeout))
//	if err != nil {
//	    return err
//	}
//	defer host.Close()
//
//	if err := host.RunFile(ctx, "words.lua"); err != nil {
//	    return err
//	}
//
// Scripts see the document through ms.selection; see package api for the
// functions available.
package plugin

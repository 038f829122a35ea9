// Package vfs provides the flat file system used by user programs and the
// kernel-wide open-file table that maps small integer ids to open files.
//
// Two storage backends are available: in-memory (MemFS) and a host
// directory (DiskFS). Slots 0 and 1 of every open-file table are the
// console input and console output and can never be closed.
//
// # Usage
//
//	ft := vfs.NewFileTable(memfs.New(), vfs.MaxOpenFiles, logger)
//	if err := ft.Create("notes"); err != nil {
//		return err
//	}
//	id, err := ft.Open("notes", vfs.ModeReadWrite)
//	if err != nil {
//		return err
//	}
//	defer ft.Close(id)
package vfs

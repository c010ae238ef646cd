package main

import (
	"encoding/binary"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/sirjuddington/slade-core/archive"
	"github.com/sirjuddington/slade-core/mapdata"
	"github.com/sirjuddington/slade-core/mapformat"
)

var convertCmd = &cobra.Command{
	Use:   "convert <archive> <map> <doom|hexen|udmf>",
	Short: "Convert one map in an archive to another wire format",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openArchive(args[0])
		if err != nil {
			return err
		}
		desc, err := findMap(a, args[1])
		if err != nil {
			return err
		}

		lumps := mapLumps(desc.Head)
		m := mapdata.NewMap()
		switch desc.Format {
		case archive.MapFormatDoom:
			if err := mapformat.ReadDoom(m, lumps["VERTEXES"], lumps["SIDEDEFS"], lumps["LINEDEFS"], lumps["SECTORS"], lumps["THINGS"], binary.LittleEndian); err != nil {
				return err
			}
		case archive.MapFormatHexen:
			if err := mapformat.ReadHexen(m, lumps["VERTEXES"], lumps["SIDEDEFS"], lumps["LINEDEFS"], lumps["SECTORS"], lumps["THINGS"], binary.LittleEndian); err != nil {
				return err
			}
		case archive.MapFormatUDMF:
			if err := mapformat.ReadUDMF(m, lumps["TEXTMAP"], nil); err != nil {
				return err
			}
		default:
			return fmt.Errorf("convert: unsupported source format %s", desc.Format)
		}

		switch args[2] {
		case "udmf":
			if desc.Format == archive.MapFormatHexen {
				mapformat.ConvertHexenToUDMF(m)
			}
			text := mapformat.WriteUDMF(m, nil)
			if _, err := os.Stdout.Write(text); err != nil {
				return err
			}
			fmt.Fprintf(os.Stderr, "TEXTMAP (%d bytes) written to stdout; redirect/edit as needed\n", len(text))
		case "doom":
			v, s, l, sec, t := mapformat.WriteDoom(m, binary.LittleEndian)
			fmt.Printf("VERTEXES=%d SIDEDEFS=%d LINEDEFS=%d SECTORS=%d THINGS=%d\n", len(v), len(s), len(l), len(sec), len(t))
		case "hexen":
			v, s, l, sec, t := mapformat.WriteHexen(m, binary.LittleEndian)
			fmt.Printf("VERTEXES=%d SIDEDEFS=%d LINEDEFS=%d SECTORS=%d THINGS=%d\n", len(v), len(s), len(l), len(sec), len(t))
		default:
			return fmt.Errorf("convert: unsupported target format %q", args[2])
		}
		return nil
	},
}

func mapLumps(head *archive.Entry) map[string][]byte {
	out := map[string][]byte{}
	dir := head.ParentDir()
	if dir == nil {
		return out
	}
	entries := dir.Entries()
	idx := -1
	for i, e := range entries {
		if e == head {
			idx = i
			break
		}
	}
	if idx < 0 {
		return out
	}
	for _, e := range entries[idx:] {
		data, err := e.Data()
		if err != nil {
			continue
		}
		out[e.UpperName()] = data
		if e.UpperName() == "ENDMAP" || e.UpperName() == "BLOCKMAP" {
			break
		}
	}
	return out
}

func findMap(a *archive.Archive, name string) (archive.MapDesc, error) {
	for _, m := range a.DetectMaps() {
		if m.Name == name {
			return m, nil
		}
	}
	return archive.MapDesc{}, fmt.Errorf("no such map: %s", name)
}

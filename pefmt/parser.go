package pefmt

import "github.com/gogo2464/LIEF/internal/bytestream"

// dispatchDirectories runs each present directory's sub-parser inside
// its own warn-and-continue boundary (§4.5's second paragraph). A
// directory bound to a section (Directory.Section != nil) tags that
// section with the directory's semantic kind via tagSection.
func (b *Binary) dispatchDirectories(s *bytestream.Stream, h headers) {
	for _, dir := range b.Directories {
		if !dir.present() {
			continue
		}
		b.tagSection(dir)

		switch dir.Kind {
		case DirImport:
			imports, err := parseImports(s, b, dir)
			if err != nil {
				b.warn("imports", err)
				continue
			}
			b.Imports = imports
			b.HasImports = true

		case DirExport:
			exports, err := parseExports(s, b, dir)
			if err != nil {
				b.warn("exports", err)
				continue
			}
			b.Exports = exports
			b.HasExports = true

		case DirTLS:
			tls, err := parseTLS(s, b, dir)
			if err != nil {
				b.warn("tls", err)
				continue
			}
			b.TLS = tls
			b.HasTLS = true

		case DirLoadConfig:
			lc, err := parseLoadConfig(s, b, dir)
			if err != nil {
				b.warn("load_config", err)
				continue
			}
			b.LoadConfig = lc
			b.HasConfiguration = true

		case DirBaseReloc:
			relocs, err := parseBaseRelocations(s, b, dir)
			if err != nil {
				b.warn("relocations", err)
				continue
			}
			b.Relocations = relocs
			b.HasRelocations = true

		case DirDebug:
			entries, err := parseDebugDirectory(s, b, dir)
			if err != nil {
				b.warn("debug", err)
				continue
			}
			b.DebugEntries = entries
			b.HasDebug = true

		case DirResource:
			res, err := parseResources(s, b, dir)
			if err != nil {
				b.warn("resources", err)
				continue
			}
			b.Resources = res
			b.HasResources = true

		case DirCertificate:
			sig, err := parseSignature(s, dir)
			if err != nil {
				b.warn("signature", err)
				continue
			}
			b.Signature = sig
			b.HasSignature = true
		}
	}
}

// SectionTags maps section index to the directory kind bound to it, for
// every directory whose RVA fell inside a section (§4.5 "tag that
// section with the corresponding semantic kind").
type SectionTags map[int]DirectoryKind

func (b *Binary) tagSection(dir Directory) {
	if dir.Section == nil {
		return
	}
	if b.sectionTags == nil {
		b.sectionTags = make(SectionTags)
	}
	for i := range b.Sections {
		if &b.Sections[i] == dir.Section {
			b.sectionTags[i] = dir.Kind
			return
		}
	}
}

// SectionTags returns the section-index to directory-kind tagging
// accumulated during dispatch.
func (b *Binary) SectionTags() SectionTags {
	return b.sectionTags
}

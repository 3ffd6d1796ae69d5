// Package classify maps file names to human-readable type labels using a
// fixed extension table. Classification looks only at the name, never at
// contents, size or timestamps.
package classify

import (
	"sort"
	"strings"
)

// Unknown is the label for extensions missing from the table.
const Unknown = "Unknown"

// table maps a lowercase extension (without the dot) to its label.
var table = map[string]string{
	"txt":        "Text File",
	"rtf":        "Rich Text Format",
	"md":         "Markdown Document",
	"doc":        "Microsoft Word Document",
	"docx":       "Microsoft Word Document",
	"odt":        "OpenDocument Text",
	"xls":        "Excel Spreadsheet",
	"xlsx":       "Excel Spreadsheet",
	"ods":        "OpenDocument Spreadsheet",
	"csv":        "Comma-Separated Values",
	"ppt":        "PowerPoint Presentation",
	"pptx":       "PowerPoint Presentation",
	"odp":        "OpenDocument Presentation",
	"pdf":        "PDF Document",
	"epub":       "eBook (EPUB)",
	"mobi":       "eBook (MOBI)",
	"tex":        "LaTeX Document",
	"py":         "Python Script",
	"java":       "Java Source Code",
	"c":          "C Source Code",
	"cpp":        "C++ Source Code",
	"h":          "C/C++ Header",
	"cs":         "C# Source Code",
	"vb":         "Visual Basic File",
	"js":         "JavaScript Source Code",
	"ts":         "TypeScript Source Code",
	"php":        "PHP Script",
	"html":       "HTML Document",
	"htm":        "HTML Document",
	"css":        "Cascading Style Sheet",
	"go":         "Go Source Code",
	"rb":         "Ruby Script",
	"swift":      "Swift Source Code",
	"rs":         "Rust Source Code",
	"kt":         "Kotlin Source Code",
	"sh":         "Shell Script",
	"bat":        "Batch Script",
	"pl":         "Perl Script",
	"lua":        "Lua Script",
	"r":          "R Script",
	"csproj":     "C# Project",
	"sln":        "Visual Studio Solution",
	"vcxproj":    "Visual C++ Project",
	"makefile":   "Makefile",
	"cmake":      "CMake Script",
	"gradle":     "Gradle Build Script",
	"xcodeproj":  "Xcode Project",
	"json":       "JSON Data",
	"xml":        "XML Data",
	"yaml":       "YAML Data",
	"yml":        "YAML Data",
	"ini":        "Configuration File",
	"toml":       "TOML Config File",
	"env":        "Environment Config File",
	"db":         "Database File",
	"sqlite":     "SQLite Database",
	"log":        "Log File",
	"mp3":        "MP3 Audio",
	"wav":        "WAV Audio",
	"ogg":        "OGG Audio",
	"flac":       "FLAC Audio",
	"m4a":        "M4A Audio",
	"aac":        "AAC Audio",
	"mp4":        "MP4 Video",
	"mkv":        "Matroska Video",
	"avi":        "AVI Video",
	"mov":        "QuickTime Video",
	"wmv":        "Windows Media Video",
	"webm":       "WebM Video",
	"jpg":        "JPEG Image",
	"jpeg":       "JPEG Image",
	"png":        "PNG Image",
	"bmp":        "Bitmap Image",
	"gif":        "GIF Image",
	"webp":       "WebP Image",
	"ico":        "Icon File",
	"tiff":       "TIFF Image",
	"svg":        "Scalable Vector Graphic",
	"fbx":        "3D Model (FBX)",
	"obj":        "3D Model (OBJ)",
	"stl":        "3D Model (STL)",
	"blend":      "Blender Project",
	"dae":        "Collada 3D Model",
	"skp":        "SketchUp Model",
	"dwg":        "AutoCAD Drawing",
	"dxf":        "Drawing Exchange Format",
	"zip":        "ZIP Archive",
	"rar":        "RAR Archive",
	"7z":         "7-Zip Archive",
	"tar":        "TAR Archive",
	"gz":         "Gzip Compressed",
	"bz2":        "Bzip2 Compressed",
	"xz":         "XZ Compressed",
	"iso":        "ISO Disk Image",
	"exe":        "Windows Executable",
	"msi":        "Windows Installer",
	"apk":        "Android Package",
	"app":        "MacOS App Bundle",
	"bin":        "Binary File",
	"dll":        "Dynamic Link Library",
	"so":         "Shared Object Library (Linux)",
	"deb":        "Debian Package",
	"rpm":        "Red Hat Package",
	"vdi":        "VirtualBox Disk Image",
	"vmdk":       "VMware Disk Image",
	"ova":        "Open Virtual Appliance",
	"ovf":        "Open Virtual Format",
	"qcow2":      "QEMU Disk Image",
	"img":        "Disk Image",
	"dockerfile": "Docker Build File",
	"ttf":        "TrueType Font",
	"otf":        "OpenType Font",
	"woff":       "Web Open Font Format",
	"woff2":      "Web Open Font Format 2",
	"psd":        "Photoshop Document",
	"ai":         "Adobe Illustrator",
	"xd":         "Adobe XD Design File",
	"sketch":     "Sketch Design File",
	"torrent":    "Torrent File",
	"pem":        "PEM Certificate",
	"crt":        "Certificate File",
	"key":        "Key File",
	"cfg":        "Configuration File",
}

// Entry is one row of the classification table.
type Entry struct {
	Extension string `json:"extension"`
	Label     string `json:"label"`
}

// Extension returns the lookup key for filename: the lowercased text after
// the last dot, or the whole lowercased name when there is no dot.
func Extension(filename string) string {
	if i := strings.LastIndexByte(filename, '.'); i >= 0 {
		return strings.ToLower(filename[i+1:])
	}
	return strings.ToLower(filename)
}

// Classify returns the type label for filename, or Unknown.
func Classify(filename string) string {
	if label, ok := table[Extension(filename)]; ok {
		return label
	}
	return Unknown
}

// Lookup reports the label registered for ext. A leading dot and case are ignored.
func Lookup(ext string) (string, bool) {
	label, ok := table[strings.ToLower(strings.TrimPrefix(ext, "."))]
	return label, ok
}

// Known returns a copy of the table sorted by extension.
func Known() []Entry {
	entries := make([]Entry, 0, len(table))
	for ext, label := range table {
		entries = append(entries, Entry{Extension: ext, Label: label})
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Extension < entries[j].Extension
	})
	return entries
}

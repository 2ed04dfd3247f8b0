package metadata

// DirEntry is one child of a directory as returned by ReadDirectory.
type DirEntry struct {
	// Name is the child name within the directory
	Name string

	// Handle references the child entry
	Handle FileHandle

	// Type is the child entry type
	Type FileType
}

// ReadDirPage represents one page of directory entries returned by ReadDirectory.
//
// Pagination Flow:
//
//	page, err := store.ReadDirectory(ctx, dirHandle, "", 256)
//	if err != nil {
//	    return err
//	}
//	for _, entry := range page.Entries {
//	    fmt.Printf("%s\n", entry.Name)
//	}
//	for page.HasMore {
//	    page, err = store.ReadDirectory(ctx, dirHandle, page.NextToken, 256)
//	    ...
//	}
//
// Ordering:
// Entries are returned in ascending byte order of their names, and the
// token is the last name returned. Entries created or removed between two
// calls may or may not be observed, but no entry is returned twice.
type ReadDirPage struct {
	// Entries contains the directory entries for this page.
	Entries []DirEntry

	// NextToken resumes pagination after the last entry of this page.
	// Empty when HasMore is false.
	NextToken string

	// HasMore indicates whether further pages exist.
	HasMore bool
}

// DefaultPageSize is used by ReadDirectory when limit <= 0.
const DefaultPageSize = 256

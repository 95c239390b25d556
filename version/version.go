package version

// These variables will be linked in at build time
// and are to do with the build/source
var (
	BuildDate string
	Commit    string
	Version   = "dev"
)

// ShortCommit is the first 8 characters of the commit, if we have one.
func ShortCommit() string {
	if len(Commit) > 8 {
		return Commit[0:8]
	}
	return Commit
}

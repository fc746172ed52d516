package consts

// inject version by '-X' flag
// go build -ldflags "-X github.com/vyomadl/vyoma-dl/pkg/consts.Version=${VERSION}"
var (
	Version   string = "dev"
	BuildTime string = "unknown"
	GitCommit string = "unknown"
)

const (
	AppName        = "vyoma-dl"
	DefaultSiteURL = "https://www.sanskritfromhome.in"
)

func UserAgent() string {
	return AppName + "/" + Version
}

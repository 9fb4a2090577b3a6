package logging

import "fmt"

const banner = `
 ____            _            ____           _
| __ )  __ _  __| | __ _  ___|  _ \ __ _  __| | __ _ _ __
|  _ \ / _` + "`" + ` |/ _` + "`" + ` |/ _` + "`" + ` |/ _ \ |_) / _` + "`" + ` |/ _` + "`" + ` |/ _` + "`" + ` | '__|
| |_) | (_| | (_| | (_| |  __/  _ < (_| | (_| | (_| | |
|____/ \__,_|\__,_|\__, |\___|_| \_\__,_|\__,_|\__,_|_|
                   |___/
`

func PrintBanner() {
	fmt.Printf("%s\n", banner)
}

package constant

// AsciiArtLogo is the application's banner shown in the root help.
const AsciiArtLogo = `
     _           _                  _ 
  __| | __ _ ___| |__  _ __ ___ ___| |
 / _` + "`" + ` |/ _` + "`" + ` / __| '_ \| '__/ _ \/ _ \ |
| (_| | (_| \__ \ | | | | |  __/  __/ |
 \__,_|\__,_|___/_| |_|_|  \___|\___|_|
`

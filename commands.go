package ftpd

// commandDescription pairs a verb's handler with whether it is reachable
// before authentication.
type commandDescription struct {
	Open bool
	Fn   func(*session, string) error
}

// commandTable is the full set of verbs this server understands. Anything
// not listed here draws a 502; anything listed but gated by Open=false
// draws a 530 until USER/PASS succeed.
var commandTable = map[string]*commandDescription{
	"USER": {Open: true, Fn: (*session).handleUSER},
	"PASS": {Open: true, Fn: (*session).handlePASS},
	"QUIT": {Open: true, Fn: (*session).handleQUIT},
	"NOOP": {Open: true, Fn: (*session).handleNOOP},
	"SYST": {Fn: (*session).handleSYST},
	"FEAT": {Fn: (*session).handleFEAT},
	"STAT": {Fn: (*session).handleSTAT},
	"TYPE": {Fn: (*session).handleTYPE},
	"ALLO": {Fn: (*session).handleALLO},
	"OPTS": {Fn: (*session).handleOPTS},

	"PWD":  {Fn: (*session).handlePWD},
	"XPWD": {Fn: (*session).handlePWD},
	"CWD":  {Fn: (*session).handleCWD},
	"XCWD": {Fn: (*session).handleCWD},
	"CDUP": {Fn: (*session).handleCDUP},
	"MKD":  {Fn: (*session).handleMKD},
	"XMKD": {Fn: (*session).handleMKD},
	"RMD":  {Fn: (*session).handleRMD},
	"XRMD": {Fn: (*session).handleRMD},
	"LIST": {Fn: (*session).handleLIST},
	"NLST": {Fn: (*session).handleNLST},

	"DELE": {Fn: (*session).handleDELE},
	"SIZE": {Fn: (*session).handleSIZE},
	"MDTM": {Fn: (*session).handleMDTM},
	"RNFR": {Fn: (*session).handleRNFR},
	"RNTO": {Fn: (*session).handleRNTO},
	"RETR": {Fn: (*session).handleRETR},
	"STOR": {Fn: (*session).handleSTOR},
	"APPE": {Fn: (*session).handleAPPE},
	"REST": {Fn: (*session).handleREST},

	"PORT": {Fn: (*session).handlePORT},
	"PASV": {Fn: (*session).handlePASV},
}

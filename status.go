package ftpd

// FTP reply codes used by this server, named per RFC 959.
const (
	statusDataConnOpen        = 150
	statusSystemStatus        = 211
	statusOK                  = 200
	statusSystemType          = 215
	statusServiceReady        = 220
	statusClosingControlConn  = 221
	statusTransferComplete    = 226
	statusEnteringPassive     = 227
	statusUserLoggedIn        = 230
	statusFileActionOK        = 250
	statusPathCreated         = 257
	statusFileStatus          = 213
	statusUserNameOK          = 331
	statusFileActionPending   = 350
	statusServiceNotAvailable = 421
	statusCantOpenDataConn    = 425
	statusActionNotTaken      = 450
	statusActionAborted       = 451
	statusNotLoggedIn         = 530
	statusActionNotTakenFile  = 550
	statusSyntaxErrorParams   = 501
	statusCommandNotImplPar   = 504
	statusBadSequence         = 503
	statusCommandNotImpl      = 502
)

package protocol

// Client-to-server action kinds.
const (
	ActVersion       = "version"
	ActUsername      = "username"
	ActSetLocation   = "setLocation"
	ActCreateLobby   = "createLobby"
	ActJoinLobby     = "joinLobby"
	ActLobbyInfo     = "lobbyInfo"
	ActLeaveLobby    = "leaveLobby"
	ActReturnToLobby = "returnToLobby"
	ActKickPlayer    = "kickPlayer"
	ActStartGame     = "startGame"
	ActStopGame      = "stopGame"
	ActSetTeam       = "setTeam"
	ActReadyBlind    = "readyBlind"
	ActUnreadyBlind  = "unreadyBlind"
	ActPlayHand      = "playHand"
	ActLobbyOptions  = "lobbyOptions"
	ActNewRound      = "newRound"
	ActFailRound     = "failRound"
	ActSetAnte       = "setAnte"
	ActSkip          = "skip"

	ActSendDeckType       = "sendDeckType"
	ActSendDeck           = "sendDeck"
	ActAddCard            = "addCard"
	ActRemoveCard         = "removeCard"
	ActSetCardSuit        = "setCardSuit"
	ActSetCardRank        = "setCardRank"
	ActSetCardEnhancement = "setCardEnhancement"
	ActSetCardEdition     = "setCardEdition"
	ActSetCardSeal        = "setCardSeal"
	ActChangeHandLevel    = "changeHandLevel"

	ActSendPhantom          = "sendPhantom"
	ActRemovePhantom        = "removePhantom"
	ActAsteroid             = "asteroid"
	ActSoldJoker            = "soldJoker"
	ActMagnet               = "magnet"
	ActMagnetResponse       = "magnetResponse"
	ActSpentLastShop        = "spentLastShop"
	ActSendMoneyToPlayer    = "sendMoneyToPlayer"
	ActReceiveEndGameJokers = "receiveEndGameJokers"
	ActStartAnteTimer       = "startAnteTimer"
	ActFailTimer            = "failTimer"
)

// Server-to-client action kinds.
const (
	ActConnected        = "connected"
	ActError            = "error"
	ActMessage          = "message"
	ActJoinedLobby      = "joinedLobby"
	ActKickedFromLobby  = "kickedFromLobby"
	ActStartBlind       = "startBlind"
	ActEndBlind         = "endBlind"
	ActSkipBlind        = "skipBlind"
	ActWinGame          = "winGame"
	ActLoseGame         = "loseGame"
	ActEndPvP           = "endPvP"
	ActPlayerInfo       = "playerInfo"
	ActEnemyInfo        = "enemyInfo"
	ActEnemyLocation    = "enemyLocation"
	ActSetPlayerTeam    = "setPlayerTeam"
	ActSetScore         = "setScore"
	ActSetDeckType      = "setDeckType"
	ActSetDeck          = "setDeck"
	ActSetHandLevel     = "setHandLevel"
	ActSpeedrun         = "speedrun"
	ActGetEndGameJokers = "getEndGameJokers"
	ActGiveMoney        = "giveMoney"
)

// Liveness probes; exempt from all side effects beyond resetting liveness.
const (
	ActKeepAlive    = "keepAlive"
	ActKeepAliveAck = "keepAliveAck"
)

package constants

// Centralized constants for headers, env keys, routes and error strings.
const (
	// Environment variable keys
	EnvSessionSecret       = "SESSION_SECRET"
	EnvGoogleClientID      = "GOOGLE_CLIENT_ID"
	EnvGoogleClientSecret  = "GOOGLE_CLIENT_SECRET"
	EnvSessionSecureCookie = "SESSION_SECURE_COOKIE"
	EnvConfigPath          = "KNOWDOWN_CONFIG"
	EnvDBPath              = "KNOWDOWN_DB"

	// HTTP headers and content types
	HeaderAuthorization = "Authorization"
	HeaderContentType   = "Content-Type"

	ContentTypeJSON = "application/json"

	// Session / Cookie names
	CookieSessionName = "kd_session"

	// Google OAuth constants
	GoogleOAuthRedirect = "postmessage"
	GoogleUserInfoURL   = "https://www.googleapis.com/oauth2/v2/userinfo"
)

var (
	// Scopes for Google userinfo
	GoogleUserInfoScopes = []string{"https://www.googleapis.com/auth/userinfo.email", "https://www.googleapis.com/auth/userinfo.profile"}
)

// Routes used by the backend router
const (
	RouteAPIPrefix          = "/api"
	RouteVersion            = "/version"
	RouteLeaderboard        = "/leaderboard"
	RouteAuthGoogleCallBack = "/auth/google/oauth2callback"
	RouteAuthLogout         = "/auth/logout"

	RoutePlayerStats    = "/player-stats"
	RouteCards          = "/cards"
	RouteCardCollection = "/cards/collection"
	RoutePackStatus     = "/packs/status"
	RoutePackOpen       = "/packs/open"

	RouteFriends           = "/friends"
	RouteFriendInvites     = "/friends/invites"
	RouteFriendInviteSend  = "/friends/invites/send"
	RouteFriendInviteReply = "/friends/invites/:inviteID/respond"

	RouteBattles       = "/battles"
	RouteBattleByID    = "/battles/:battleID"
	RouteBattlePlay    = "/battles/:battleID/play"
	RouteBattleAnswer  = "/battles/:battleID/answer"
	RouteBattleForfeit = "/battles/:battleID/forfeit"
)

// Common JSON response keys
const (
	JSONKeyError   = "error"
	JSONKeyMessage = "message"
	JSONKeyDetails = "details"
	JSONKeyStatus  = "status"
)

// Common error messages used across API handlers
const (
	ErrInvalidRequest   = "Invalid request"
	ErrMissingGoogleEnv = "Missing GOOGLE_CLIENT_ID/GOOGLE_CLIENT_SECRET in environment"

	ErrFailedFetchCards       = "Failed to fetch cards"
	ErrFailedFetchCollection  = "Failed to fetch card collection"
	ErrFailedFetchLeaderboard = "Failed to fetch leaderboard"
	ErrFailedFetchStats       = "Failed to fetch stats"
	ErrFailedFetchInvites     = "Failed to fetch invites"
	ErrFailedFetchFriends     = "Failed to fetch friends"

	ErrInvalidBattleID      = "Invalid battle ID"
	ErrBattleNotFound       = "Battle not found"
	ErrBattleAlreadyOver    = "Battle is already over"
	ErrFailedStartBattle    = "Failed to start battle"
	ErrCardNotInHand        = "Card is not in your hand"
	ErrNotEnoughPower       = "Not enough power to play this card"
	ErrFailedSubmitAnswer   = "Failed to submit answer"
	ErrPackOnCooldown       = "Pack is still on cooldown"
	ErrFailedOpenPack       = "Failed to open pack"
	ErrFailedPackStatus     = "Failed to fetch pack status"
	ErrFailedSendInvite     = "Failed to send friend invite"
	ErrFailedRespondInvite  = "Failed to respond to friend invite"
	ErrFailedUpdateProfile  = "Failed to update profile"
	ErrFailedExchangeToken  = "Failed to exchange token"
	ErrFailedGetUserInfo    = "Failed to get user info"
	ErrFailedReadUserData   = "Failed to read user data: %s"
	ErrNoEmailInProfile     = "No email in Google profile"
	ErrFailedCreateSession  = "Failed to create session"
	ErrInvalidPlayerName    = "Invalid player name"
	ErrAuthRequired         = "Authentication required"
	ErrInvalidSession       = "Invalid session"
	ErrNoCardsInCatalog     = "No cards found in the catalog"
)

// Logging field names
const (
	LogFieldBattleID = "battle_id"
	LogFieldCardID   = "card_id"
	LogFieldSubject  = "subject"
	LogFieldAddr     = "addr"
	LogFieldResult   = "result"
)

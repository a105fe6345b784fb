package session

// SelectRoute derives the reachable screen group. The splash screen gates
// everything until it completes, whatever the session says; after that an
// authenticated session gets the app screens and anything else the
// sign-in screens.
func SelectRoute(splash SplashState, sess SessionState) RouteGroup {
	if splash != SplashComplete {
		return ShowSplash
	}
	if sess.IsAuthenticated() {
		return ShowAppFlow
	}
	return ShowAuthFlow
}

package auth

import (
	"fmt"
	"io"
	"strings"
)

// ShowTokenGuide writes instructions for finding the remember_token cookie
func ShowTokenGuide(w io.Writer) {
	fmt.Fprintln(w, strings.Repeat("=", 72))
	fmt.Fprintln(w, "COUB ACCESS TOKEN")
	fmt.Fprintln(w, strings.Repeat("=", 72))
	fmt.Fprintln(w)
	fmt.Fprintln(w, "The 'liked' and 'bookmarks' categories belong to your account, so the")
	fmt.Fprintln(w, "crawler needs your session cookie to read them. Channels do not.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "STEP 1: Log in at https://coub.com in your browser")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "STEP 2: Open Developer Tools")
	fmt.Fprintln(w, "   - Chrome/Edge/Brave/Firefox: F12 or Ctrl+Shift+I (Cmd+Option+I on Mac)")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "STEP 3: Find the cookie")
	fmt.Fprintln(w, "   - Application tab (Chrome) or Storage tab (Firefox)")
	fmt.Fprintln(w, "   - Cookies > https://coub.com")
	fmt.Fprintln(w, "   - Copy the value of 'remember_token'")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "STEP 4: Hand it to the crawler")
	fmt.Fprintln(w, "   - paste it when prompted, or")
	fmt.Fprintf(w, "   - export %s=<token>, or\n", EnvVar)
	fmt.Fprintln(w, "   - pass --token <token>")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Pasting 'remember_token=<value>' also works; the prefix is stripped.")
	fmt.Fprintln(w, "The token is kept in memory only and never saved to disk.")
}

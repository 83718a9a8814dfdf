package middleware

import "net/http"

// OptionsOK отвечает 200 без тела на любой OPTIONS запрос.
// Стоит после cors.Handler: заголовки preflight к этому моменту уже выставлены.
func OptionsOK(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}
